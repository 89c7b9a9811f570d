// Package main is the entry point for pageguard.
//
// pageguard watches pages in a Chromium tab for password fields, gives live
// strength feedback next to them and keeps a per-host security snapshot that
// the panel command scores and displays.
package main

func main() {
	Execute()
}
