package main

import "github.com/avelinec/docdex/cli"

func main() {
	cli.Execute()
}
