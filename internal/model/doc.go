// Package model contains the shared interfaces and data structures used
// across the nettest runner: Settings, EndpointInfo, NettestContext,
// BytesInfo, ErrContext, the Measurement record, the Nettest capability
// interface, and the Logger interface implemented by any apex/log
// compatible logger.
package model
