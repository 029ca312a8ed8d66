// Command brainmesh exports atlas structure surfaces and assembles them into
// scenes.
package main

func main() {
	Execute()
}
