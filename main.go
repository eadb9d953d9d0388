/*
Copyright 2024 Markus Papenbrock
*/
package main

import "github.com/mpapenbr/racetrack-sim-go/cmd"

func main() {
	cmd.Execute()
}
