package devcmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/valyala/fasttemplate"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/logging"
)

// ResultKey is the key a command's return value is made available under to post-messages.
const ResultKey = "result"

// Message renders a line of user-facing output from a command's Args.
type Message interface {
	Render(args Args) (string, error)
}

// Template is a Message with `{key}` placeholders, filled from Args.
// A placeholder may carry a format after a colon, in fmt syntax without the percent sign:
// `{result:.1f}`, `{level:3d}`.  `{{` and `}}` are literal braces.
// A nil value renders as the empty string.
type Template string

const (
	openBrace  = "\x00"
	closeBrace = "\x01"
)

var (
	escapeBraces   = strings.NewReplacer("{{", openBrace, "}}", closeBrace)
	unescapeBraces = strings.NewReplacer(openBrace, "{", closeBrace, "}")
)

// Render fills in the placeholders.
//
// Errors:
//
//   - devicectl-error-configuration -- the template names a key that is not in args
func (t Template) Render(args Args) (string, error) {
	s, err := fasttemplate.ExecuteFuncStringWithErr(escapeBraces.Replace(string(t)), "{", "}", func(w io.Writer, tag string) (int, error) {
		key, format, _ := strings.Cut(tag, ":")
		v, ok := args[key]
		if !ok {
			return 0, devapi.ErrorConfiguration(fmt.Sprintf("message %q refers to unknown key %q", string(t), key))
		}
		if v == nil {
			return 0, nil
		}
		return io.WriteString(w, formatValue(v, format))
	})
	if err != nil {
		return "", err
	}
	return unescapeBraces.Replace(s), nil
}

func formatValue(v interface{}, format string) string {
	if format == "" {
		return fmt.Sprint(v)
	}
	if last := format[len(format)-1]; !unicode.IsLetter(rune(last)) {
		format += "v"
	}
	return fmt.Sprintf("%"+format, v)
}

// MessageFunc computes a message.
type MessageFunc func(args Args) string

func (f MessageFunc) Render(args Args) (string, error) {
	return f(args), nil
}

// EchoStatus prints pre before the command runs and post after it succeeds.
// Either may be nil.  post sees the command's return value under ResultKey.
// Messages that render to only whitespace print nothing.
func EchoStatus(pre, post Message) Middleware {
	return func(next Func) Func {
		return func(ctx context.Context, args Args) (interface{}, error) {
			log := logging.Ctx(ctx)
			if err := echo(log, pre, args); err != nil {
				return nil, err
			}
			result, err := next(ctx, args)
			if err != nil {
				return result, err
			}
			if err := echo(log, post, args.With(ResultKey, result)); err != nil {
				return result, err
			}
			return result, nil
		}
	}
}

// EchoResult prints pre, runs the command, then prints its result.
func EchoResult(pre Message) Middleware {
	return EchoStatus(pre, Template("{"+ResultKey+"}"))
}

func echo(log *logging.Logger, msg Message, args Args) error {
	if msg == nil {
		return nil
	}
	text, err := msg.Render(args)
	if err != nil {
		return err
	}
	if text = strings.TrimSpace(text); text != "" {
		log.Out("%s", text)
	}
	return nil
}
