// Command embedhttp runs an example application on the embedhttp server
// core and decodes raw HTTP/1.1 requests for debugging.
//
// Usage:
//
//	# Serve the example routes on port 8080
//	embedhttp serve --port 8080
//
//	# Serve with a configuration file, reloading the log level on change
//	embedhttp serve --config embedhttp.yaml
//
//	# Decode a captured request
//	embedhttp inspect request.txt
package main

func main() {
	Execute()
}
