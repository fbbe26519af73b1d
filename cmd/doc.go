// Package cmd wires the xks-validate command line interface: the preflight
// and conformance validation commands plus the shared connection, logging
// and configuration flags.
package cmd
