package main

import (
	_ "time/tzdata"

	"github.com/m04kA/SMC-DetailingBooking/internal/cli"
)

func main() {
	cli.Execute()
}
