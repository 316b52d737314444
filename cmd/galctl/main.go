// Command galctl exercises the galkit record storage subsystem.
package main

func main() {
	execute()
}
