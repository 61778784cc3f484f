package main

import "github.com/javanhut/sketchdb/cli"

func main() {
	cli.Execute()
}
