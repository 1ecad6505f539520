package main

import "github.com/frahmantamala/dayflow/cmd"

func main() {
	cmd.Execute()
}
