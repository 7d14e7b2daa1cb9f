package main

import "github.com/openlore/crosspost/cmd/crossposctl/cmd"

func main() {
	cmd.Execute()
}
