// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the single checkout run: load the basket,
// price it on both optimizer endpoints, report the savings. It is decoupled
// from any specific entrypoint like a CLI.
package app
