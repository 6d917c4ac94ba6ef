package spec

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// rawType, rawParam and rawDecl mirror the on-disk shape. Pointers
// distinguish a missing key from an empty value.
type rawType struct {
	Tag   string `yaml:"tag" json:"tag" validate:"required"`
	Name  string `yaml:"name" json:"name" validate:"required_unless=Tag v"`
	CName string `yaml:"cname" json:"cname"`
}

type rawParam struct {
	Name string   `yaml:"name" json:"name" validate:"required"`
	Type *rawType `yaml:"type" json:"type" validate:"required"`
}

type rawDecl struct {
	Name    string      `yaml:"name" json:"name" validate:"required"`
	CName   string      `yaml:"cname" json:"cname"`
	GenStub *bool       `yaml:"gen_stub" json:"gen_stub"`
	Ret     *rawType    `yaml:"ret" json:"ret" validate:"required"`
	Args    *[]rawParam `yaml:"args" json:"args" validate:"required"`
}

// Creating a validator is expensive; it caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads a declaration list from a JSON or YAML file.
func Load(path string) ([]Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MalformedSpecError{
			Source:  path,
			Index:   -1,
			Message: "cannot read spec",
			Err:     err,
		}
	}
	return Parse(data, path)
}

// Parse decodes a declaration list. source names the input in errors; a
// ".json" suffix selects the strict JSON decoder, anything else YAML.
func Parse(data []byte, source string) ([]Declaration, error) {
	var raws []rawDecl
	var err error
	if strings.EqualFold(filepath.Ext(source), ".json") {
		err = json.Unmarshal(data, &raws)
	} else {
		err = yaml.Unmarshal(data, &raws)
	}
	if err != nil {
		return nil, &MalformedSpecError{
			Source:  source,
			Index:   -1,
			Message: "cannot decode spec",
			Err:     err,
		}
	}

	decls := make([]Declaration, 0, len(raws))
	for i := range raws {
		if err := checkShape(&raws[i], source, i); err != nil {
			return nil, err
		}
		d, err := convert(&raws[i])
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func checkShape(r *rawDecl, source string, index int) error {
	if err := structErr(validate.Struct(r), "", source, index); err != nil {
		return err
	}
	if err := structErr(validate.Struct(r.Ret), "ret.", source, index); err != nil {
		return err
	}
	for i := range *r.Args {
		arg := &(*r.Args)[i]
		prefix := fmt.Sprintf("args[%d].", i)
		if err := structErr(validate.Struct(arg), prefix, source, index); err != nil {
			return err
		}
		if err := structErr(validate.Struct(arg.Type), prefix+"type.", source, index); err != nil {
			return err
		}
	}
	return nil
}

// structErr turns the first validator failure into a MalformedSpecError.
func structErr(err error, prefix, source string, index int) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &MalformedSpecError{Source: source, Index: index, Message: "invalid declaration", Err: err}
	}
	fe := verrs[0]
	field := fe.Namespace()
	// Drop the root struct name.
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	field = prefix + field

	msg := fmt.Sprintf("%s failed '%s' check", field, fe.Tag())
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "required_unless":
		msg = field + " is required for non-void types"
	}
	return &MalformedSpecError{Source: source, Index: index, Field: field, Message: msg}
}

func convert(r *rawDecl) (Declaration, error) {
	d := Declaration{
		Name:         r.Name,
		NativeName:   r.CName,
		GenerateStub: true,
	}
	if d.NativeName == "" {
		d.NativeName = d.Name
	}
	if r.GenStub != nil {
		d.GenerateStub = *r.GenStub
	}

	ret, ok := ParseTag(r.Ret.Tag)
	if !ok || ret == RawPointer {
		return Declaration{}, &UnrecognizedTypeTagError{Declaration: r.Name, Tag: r.Ret.Tag}
	}
	d.Return = TypeDescriptor{Tag: ret, NativeTypeName: r.Ret.Name, NativeTypeNameOverride: r.Ret.CName}

	d.Params = make([]Parameter, 0, len(*r.Args))
	for _, a := range *r.Args {
		tag, ok := ParseTag(a.Type.Tag)
		if !ok || tag == Void {
			return Declaration{}, &UnrecognizedTypeTagError{Declaration: r.Name, Parameter: a.Name, Tag: a.Type.Tag}
		}
		d.Params = append(d.Params, Parameter{
			Name: a.Name,
			Type: TypeDescriptor{Tag: tag, NativeTypeName: a.Type.Name, NativeTypeNameOverride: a.Type.CName},
		})
	}
	return d, nil
}
