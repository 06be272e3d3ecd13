package main

import "github.com/chrisdamba/grocerplan/cmd"

func main() {
	cmd.Execute()
}
