// Package main provides the entry point for the client-hunter CLI.
package main

func main() {
	Execute()
}
