package main

import "github.com/frahmantamala/wbs-tracker/cmd"

func main() {
	cmd.Execute()
}
