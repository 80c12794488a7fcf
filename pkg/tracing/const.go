package tracing

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used by devicectl
const (
	AttrKeyDevicectlErrorCode     = "devicectl.error.code"
	AttrKeyDevicectlDeviceClass   = "devicectl.device.class"
	AttrKeyDevicectlDeviceAddress = "devicectl.device.address"
	AttrKeyDevicectlCommand       = "devicectl.command"
	AttrKeyDevicectlRpcMethod     = "devicectl.rpc.method"
	AttrKeyDevicectlRpcCodec      = "devicectl.rpc.codec"
)

// Attribute values
const (
	AttrValueRpcCodecJson    = "json"
	AttrValueRpcCodecDagcbor = "dag-cbor"
)

// Enumerated attributes
var (
	AttrFullRpcCodecJson    = attribute.String(AttrKeyDevicectlRpcCodec, AttrValueRpcCodecJson)
	AttrFullRpcCodecDagcbor = attribute.String(AttrKeyDevicectlRpcCodec, AttrValueRpcCodecDagcbor)
)
