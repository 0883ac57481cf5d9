package buildinfo

import (
	"encoding/json"
	"io"
	"runtime"
)

const Unknown = "unknown"

var (
	gitVersion  = Unknown
	gitRevision = Unknown
	date        = Unknown

	Info info
)

type info struct {
	Arch        string `json:"arch"`
	Compiler    string `json:"compiler"`
	Date        string `json:"build_date"`
	GitRevision string `json:"revision"`
	GitVersion  string `json:"version"`
	GoVersion   string `json:"go_version"`
	OS          string `json:"os"`
}

func init() {
	Info.Arch = runtime.GOARCH
	Info.Compiler = runtime.Compiler
	Info.Date = date
	Info.GitRevision = gitRevision
	Info.GitVersion = gitVersion
	Info.GoVersion = runtime.Version()
	Info.OS = runtime.GOOS
}

func JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(Info)
}
