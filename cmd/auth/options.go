package main

// Options are the command line flags; everything else comes from the
// environment.
type Options struct {
	EnvFile     string `long:"env-file" description:"optional .env file loaded before reading the environment" default:".env"`
	MigrateOnly bool   `long:"migrate-only" description:"run migrations and exit"`
	Listen      string `short:"l" long:"listen" description:"listen address, overrides LISTEN_ADDR"`
}
