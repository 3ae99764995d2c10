/*
Package catalog loads versioned property schemas from YAML or JSON documents and
looks them up by resource type and exact API version.

A document holds either one schema or a list of them under "schemas":

	schemas:
	  - resourceType: Microsoft.Resources/resourceGroups
	    version: "2024-11-01"
	    required: [location]
	    properties:
	      location:
	        dataType: string
	        required: true
	        validation:
	          - ruleType: pattern-match
	            value: "^[a-z0-9]+$"
	            message: Location must contain only lowercase letters and numbers
	      tags:
	        dataType: object
	        defaultValue: {}

Every document is checked against an embedded JSON Schema before it is decoded,
so structural mistakes are reported with the file and location at fault.

There is no notion of a latest version: callers always name the version they want.
Catalogs can be published to and rebuilt from any ports.CatalogStore.
*/
package catalog
