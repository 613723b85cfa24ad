package main

import "barangay-events/cmd/barangay-admin/cmd"

func main() {
	cmd.Execute()
}
