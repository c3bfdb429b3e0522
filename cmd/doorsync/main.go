// Package main provides the doorsync CLI, an offline-first client for
// door inspection field work.
package main

func main() {
	Execute()
}
