package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrData is structured context carried by an Error, such as the id of the
// pooled transaction a conflict was detected against. It prints as key=value
// pairs in key order.
type ErrData map[string]interface{}

func (d *ErrData) Error() string {
	if d == nil || len(*d) == 0 {
		return ""
	}

	keys := make([]string, 0, len(*d))
	for k := range *d {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var b strings.Builder

	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, (*d)[k])
	}

	return b.String()
}

func (d *ErrData) SetData(key string, value interface{}) {
	if *d == nil {
		*d = ErrData{}
	}

	(*d)[key] = value
}

func (d *ErrData) GetData(key string) interface{} {
	if d == nil {
		return nil
	}

	return (*d)[key]
}
