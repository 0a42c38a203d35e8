package main

import "github.com/mentevital/terapia-admin/cmd"

func main() {
	cmd.Execute()
}
