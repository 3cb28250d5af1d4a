package server

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

const (
	protoFile   = "interpreter.proto"
	ServiceName = "ul.v1.Interpreter"

	evalMethod     = "Eval"
	tokenizeMethod = "Tokenize"
)

//go:embed interpreter.proto
var protoSource string

var (
	loadOnce sync.Once
	loaded   *descriptors
	loadErr  error
)

type descriptors struct {
	service  *desc.ServiceDescriptor
	eval     *desc.MethodDescriptor
	tokenize *desc.MethodDescriptor
}

// loadDescriptors parses the embedded service definition once.
func loadDescriptors() (*descriptors, error) {
	loadOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
		}
		fds, err := parser.ParseFiles(protoFile)
		if err != nil {
			loadErr = fmt.Errorf("failed to parse proto: %w", err)
			return
		}
		sd := fds[0].FindService(ServiceName)
		if sd == nil {
			loadErr = fmt.Errorf("service %s not found in %s", ServiceName, protoFile)
			return
		}
		loaded = &descriptors{
			service:  sd,
			eval:     sd.FindMethodByName(evalMethod),
			tokenize: sd.FindMethodByName(tokenizeMethod),
		}
	})
	return loaded, loadErr
}

func methodPath(method string) string {
	return "/" + ServiceName + "/" + method
}

func newMessage(md *desc.MessageDescriptor) *dynamicpb.Message {
	return dynamicpb.NewMessage(md.UnwrapMessage())
}

func field(msg *dynamicpb.Message, name string) protoreflect.FieldDescriptor {
	return msg.Descriptor().Fields().ByName(protoreflect.Name(name))
}

func getString(msg *dynamicpb.Message, name string) string {
	return msg.Get(field(msg, name)).String()
}

func setString(msg *dynamicpb.Message, name, value string) {
	msg.Set(field(msg, name), protoreflect.ValueOfString(value))
}

func getStrings(msg *dynamicpb.Message, name string) []string {
	list := msg.Get(field(msg, name)).List()
	out := make([]string, list.Len())
	for i := range out {
		out[i] = list.Get(i).String()
	}
	return out
}

func setStrings(msg *dynamicpb.Message, name string, values []string) {
	list := msg.Mutable(field(msg, name)).List()
	for _, v := range values {
		list.Append(protoreflect.ValueOfString(v))
	}
}
