// awsvars - AWS infrastructure variable discovery
// Discover. Index. Export.
package main

func main() {
	Execute()
}
