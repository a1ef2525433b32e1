package main

import "github.com/CityLensHQ/citylens-cli/cmd"

func main() {
	cmd.Execute()
}
