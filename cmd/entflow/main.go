// entflow is a discrete event simulation kernel for entity flow models.
// The CLI runs small built-in models, mostly for trying out the kernel
// and for profiling.
package main

func main() {
	Execute()
}
