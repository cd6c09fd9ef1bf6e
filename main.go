package main

import "github.com/Mohsinsiddi/mdtlockup/cmd"

func main() {
	cmd.Execute()
}
