package main

import "github.com/emrgen/storefront/cmd"

func main() {
	cmd.Execute()
}
