// Command strtab builds, inspects and edits strtab snapshot files.
package main

func main() {
	execute()
}
