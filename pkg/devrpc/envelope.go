package devrpc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ipld/go-ipld-prime/codec"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/codec/json"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/tracing"
)

// Codec is the wire encoding of envelopes.
type Codec struct {
	Name   string
	Encode codec.Encoder
	Decode codec.Decoder
}

var (
	CodecJSON    = Codec{Name: tracing.AttrValueRpcCodecJson, Encode: json.Encode, Decode: json.Decode}
	CodecDagCBOR = Codec{Name: tracing.AttrValueRpcCodecDagcbor, Encode: dagcbor.Encode, Decode: dagcbor.Decode}
)

// CodecByName returns the codec called name ("json" or "dag-cbor").
//
// Errors:
//
//   - devicectl-error-invalid-parameter -- unknown codec
func CodecByName(name string) (Codec, error) {
	switch name {
	case CodecJSON.Name:
		return CodecJSON, nil
	case CodecDagCBOR.Name:
		return CodecDagCBOR, nil
	default:
		return Codec{}, devapi.ErrorInvalidParameter("codec", fmt.Sprintf("unknown codec %q, expected %q or %q", name, CodecJSON.Name, CodecDagCBOR.Name))
	}
}

// Request is sent to a device:
//
//	{"id": "...", "method": "get_prop", "params": [...], "auth": "..."}
type Request struct {
	ID     string
	Method string
	Params []datamodel.Node
	Auth   string
}

// RemoteError is the error a device answers with.
type RemoteError struct {
	Code    int64
	Message string
}

// Reply is what a device answers:
//
//	{"id": "...", "result": ...}
//	{"id": "...", "error": {"code": -1, "message": "..."}}
type Reply struct {
	ID     string
	Result datamodel.Node
	Error  *RemoteError
}

// Sign computes the auth field of a request: hex HMAC-SHA256 of "id:method", keyed by the token.
func Sign(token, id, method string) string {
	mac := hmac.New(sha256.New, []byte(token))
	mac.Write([]byte(id + ":" + method))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a request's auth field against token.
func (r Request) Verify(token string) bool {
	return hmac.Equal([]byte(r.Auth), []byte(Sign(token, r.ID, r.Method)))
}

func (r Request) Node() (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Any, 4, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "id", qp.String(r.ID))
		qp.MapEntry(ma, "method", qp.String(r.Method))
		qp.MapEntry(ma, "params", qp.List(int64(len(r.Params)), func(la datamodel.ListAssembler) {
			for _, p := range r.Params {
				qp.ListEntry(la, qp.Node(p))
			}
		}))
		qp.MapEntry(ma, "auth", qp.String(r.Auth))
	})
}

func (r Reply) Node() (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Any, 2, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "id", qp.String(r.ID))
		if r.Error != nil {
			qp.MapEntry(ma, "error", qp.Map(2, func(ma datamodel.MapAssembler) {
				qp.MapEntry(ma, "code", qp.Int(r.Error.Code))
				qp.MapEntry(ma, "message", qp.String(r.Error.Message))
			}))
			return
		}
		result := r.Result
		if result == nil {
			result = datamodel.Null
		}
		qp.MapEntry(ma, "result", qp.Node(result))
	})
}

// ParseRequest reads a request envelope.
//
// Errors:
//
//   - devicectl-error-device-protocol -- missing or mistyped fields
func ParseRequest(n datamodel.Node) (Request, error) {
	var r Request
	var err error
	if r.ID, err = stringField(n, "id"); err != nil {
		return r, devapi.ErrorDeviceProtocol("", err.Error())
	}
	if r.Method, err = stringField(n, "method"); err != nil {
		return r, devapi.ErrorDeviceProtocol("", err.Error())
	}
	if r.Auth, err = stringField(n, "auth"); err != nil {
		return r, devapi.ErrorDeviceProtocol(r.Method, err.Error())
	}
	params, err := n.LookupByString("params")
	if err != nil || params.Kind() != datamodel.Kind_List {
		return r, devapi.ErrorDeviceProtocol(r.Method, "params must be a list")
	}
	it := params.ListIterator()
	for !it.Done() {
		_, v, err := it.Next()
		if err != nil {
			return r, devapi.ErrorDeviceProtocol(r.Method, err.Error())
		}
		r.Params = append(r.Params, v)
	}
	return r, nil
}

// ParseReply reads a reply envelope to a call of method.
//
// Errors:
//
//   - devicectl-error-device-protocol -- missing or mistyped fields
func ParseReply(method string, n datamodel.Node) (Reply, error) {
	var r Reply
	if n.Kind() != datamodel.Kind_Map {
		return r, devapi.ErrorDeviceProtocol(method, fmt.Sprintf("reply is a %s, not a map", n.Kind()))
	}
	id, err := stringField(n, "id")
	if err != nil {
		return r, devapi.ErrorDeviceProtocol(method, err.Error())
	}
	r.ID = id
	if e, err := n.LookupByString("error"); err == nil {
		code, err := e.LookupByString("code")
		if err != nil {
			return r, devapi.ErrorDeviceProtocol(method, "error without a code")
		}
		c, err := code.AsInt()
		if err != nil {
			return r, devapi.ErrorDeviceProtocol(method, "error code is not an integer")
		}
		msg, _ := stringField(e, "message")
		r.Error = &RemoteError{Code: c, Message: msg}
		return r, nil
	}
	result, err := n.LookupByString("result")
	if err != nil {
		return r, devapi.ErrorDeviceProtocol(method, "reply has neither result nor error")
	}
	r.Result = result
	return r, nil
}

func stringField(n datamodel.Node, key string) (string, error) {
	v, err := n.LookupByString(key)
	if err != nil {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, err := v.AsString()
	if err != nil {
		return "", fmt.Errorf("field %q is not a string", key)
	}
	return s, nil
}
