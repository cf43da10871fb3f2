package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"answers only", &Ports{Answers: &MockAnswerService{}}, nil},
		{"all ports", &Ports{
			Answers:   &MockAnswerService{},
			Discovery: &MockDiscoveryService{},
			History:   &MockHistoryService{},
		}, nil},
		{"missing answers", &Ports{Discovery: &MockDiscoveryService{}}, ErrMissingAnswerService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
