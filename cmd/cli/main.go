// ChargeScan - EV Charger Log Analysis Tool
//
// ChargeScan reconstructs reliable timelines from charger log bundles whose
// clocks reset on every power-on, and classifies outages, firmware update
// restarts, and logging failures across a fleet.
package main

import (
	"os"

	"chargescan/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
