// Command rbfmap runs the RBF mesh mapping core's CLI. It lives under
// cmd/rbfmap rather than at the module root because the module root is the
// rbfmap library package itself.
package main

import "github.com/notargets/rbfmap/cmd"

func main() {
	cmd.Execute()
}
