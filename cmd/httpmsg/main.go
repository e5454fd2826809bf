// Command httpmsg parses HTTP/1.1 messages out of a file or the standard input and prints
// every one of them, either as JSON or re-serialized in the canonical form.
//
//	httpmsg [-response] [-head] [-canonical] [-max-start-line n] [-max-field n]
//	        [-max-header-space n] [-max-headers n] [-max-body n] [-max-chunk n] [file]
package main

import (
	"flag"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("httpmsg: ")

	opts := defaultOptions()
	opts.register(flag.CommandLine)
	flag.Parse()

	if err := process(flag.Args(), os.Stdin, os.Stdout, opts); err != nil {
		log.Fatal(err)
	}
}
