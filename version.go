package propschema

// Version is the release reported by the CLI and servers. Release builds set it
// with -ldflags "-X github.com/aretw0/propschema.Version=...".
var Version = "dev"
