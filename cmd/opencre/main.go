package main

import "github.com/AlexDev08/OpenCRE-migration/cmd"

func main() {
	cmd.Execute()
}
