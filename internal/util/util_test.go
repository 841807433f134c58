package util

import (
	"reflect"
	"testing"
)

func TestMarshal(t *testing.T) {
	type args struct {
		v      interface{}
		format string
	}
	tests := []struct {
		name    string
		args    args
		want    []byte
		wantErr bool
	}{
		{
			name: "json",
			args: args{
				v:      map[string]string{"key": "value"},
				format: "json",
			},
			want:    []byte(`{"key":"value"}`),
			wantErr: false,
		},
		{
			name: "yaml",
			args: args{
				v:      map[string]string{"key": "value"},
				format: "yaml",
			},
			want:    []byte("key: value\n"),
			wantErr: false,
		},
		{
			name: "unsupported",
			args: args{
				v:      map[string]string{"key": "value"},
				format: "toml",
			},
			want:    nil,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.args.v, tt.args.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("Marshal() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}
