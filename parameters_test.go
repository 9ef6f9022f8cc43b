package datachannel

import (
	"testing"

	"github.com/duttski/usrsctp/pkg/wire"
	"github.com/stretchr/testify/assert"
)

func TestOpenParametersValidate(t *testing.T) {
	cases := []struct {
		name    string
		params  OpenParameters
		wantErr bool
	}{
		{"reliable with zero value", OpenParameters{Policy: wire.PolicyReliable, Value: 0}, false},
		{"reliable with nonzero value", OpenParameters{Policy: wire.PolicyReliable, Value: 1}, true},
		{"partial rexmit", OpenParameters{Policy: wire.PolicyPartialRexmit, Value: 5}, false},
		{"partial timed", OpenParameters{Policy: wire.PolicyPartialTimed, Value: 1000}, false},
		{"unknown policy", OpenParameters{Policy: wire.Policy(9)}, true},
	}

	for _, tc := range cases {
		err := tc.params.Validate()
		if tc.wantErr {
			assert.Error(t, err, tc.name)
		} else {
			assert.NoError(t, err, tc.name)
		}
	}
}
