// camprobe lists capture device indices that open successfully.
// Run it while nothing else holds the camera.
package main

import (
	"fmt"

	"github.com/focuslab/focustrack/pkg/capture"
)

func main() {
	fmt.Println("Probing capture devices...")

	indices := capture.AvailableIndices()
	if len(indices) == 0 {
		fmt.Println("No capture devices found")
		return
	}

	for _, idx := range indices {
		fmt.Printf("  camera %d: available\n", idx)
	}
}
