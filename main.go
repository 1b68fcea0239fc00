// Logsieve discovers, filters, and selects application event logs for profiling.
package main

import "github.com/zorak1103/logsieve/cmd"

func main() {
	cmd.Execute()
}
