// Command harbor inspects, runs and serves the bundled demo flows.
package main

func main() {
	Execute()
}
