// Rotator is a failover reverse proxy for identical upstream API instances.
//
// Every inbound request is forwarded to one of the configured instances.
// When an instance is rate limited, failing or unreachable the next one is
// tried, and streamed responses are relayed as they arrive.
//
// Usage:
//
//	# Start with azure_instances.json and built-in defaults
//	rotator run
//
//	# Start with a server config and a different instances document
//	rotator run --config /etc/rotator/rotator.yaml --instances /etc/rotator/instances.yaml
//
//	# Check an instances document
//	rotator validate --instances azure_instances.json
//
//	# Show version information
//	rotator version
package main

func main() {
	Execute()
}
