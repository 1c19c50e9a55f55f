// Command visactl runs the visa-day calculator and the stay-conflict resolver
// against a local stays file, without a database or the HTTP server.
//
// Usage:
//
//	visactl status --stays stays.yaml --nationality US --date 2024-03-15
//	visactl conflicts --stays stays.yaml
//	visactl resolve --stays stays.yaml --out resolved.yaml
//	visactl validate --stays stays.yaml --country JP --entry 2024-04-01 --exit 2024-04-20
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
