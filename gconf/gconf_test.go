package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/store"
	"github.com/iov-one/daowallet/weavetest"
	"github.com/iov-one/daowallet/weavetest/assert"
)

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		Conf        *MyConfig
		WantSaveErr *errors.Error
	}{
		"all fields": {
			Conf: &MyConfig{Number: 852151421, Text: "foobar", Addr: weavetest.NewCondition().Address()},
		},
		"empty text": {
			Conf: &MyConfig{Number: 1, Addr: weavetest.NewCondition().Address()},
		},
		"invalid address cannot be saved": {
			Conf:        &MyConfig{Number: 1, Addr: daowallet.Address("too short")},
			WantSaveErr: errors.ErrInput,
		},
		"negative number cannot be saved": {
			Conf:        &MyConfig{Number: -4, Addr: weavetest.NewCondition().Address()},
			WantSaveErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "mypkg", tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.WantSaveErr != nil {
				var got MyConfig
				assert.IsErr(t, errors.ErrNotFound, Load(db, "mypkg", &got))
				return
			}

			var got MyConfig
			if err := Load(db, "mypkg", &got); err != nil {
				t.Fatalf("cannot load configuration: %s", err)
			}
			assert.Equal(t, tc.Conf, &got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	db := store.MemStore()
	var got MyConfig
	assert.IsErr(t, errors.ErrNotFound, Load(db, "mypkg", &got))
}

func TestInitConfig(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	cases := map[string]struct {
		Genesis string
		WantErr *errors.Error
		Want    *MyConfig
	}{
		"loaded from conf section": {
			Genesis: `{"conf": {"mypkg": {"number": 12, "text": "hi", "addr": "` + addr.String() + `"}}}`,
			Want:    &MyConfig{Number: 12, Text: "hi", Addr: addr},
		},
		"missing package configuration": {
			Genesis: `{"conf": {"otherpkg": {"number": 12}}}`,
			WantErr: errors.ErrNotFound,
		},
		"invalid configuration": {
			Genesis: `{"conf": {"mypkg": {"number": -1, "addr": "` + addr.String() + `"}}}`,
			WantErr: errors.ErrInput,
		},
		"malformed conf section": {
			Genesis: `{"conf": 42}`,
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts daowallet.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.Genesis), &opts))

			db := store.MemStore()
			var conf MyConfig
			if err := InitConfig(db, opts, "mypkg", &conf); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.Want == nil {
				return
			}
			var got MyConfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.Want, &got)
		})
	}
}

type MyConfig struct {
	Number int64             `json:"number"`
	Text   string            `json:"text"`
	Addr   daowallet.Address `json:"addr"`
}

func (c *MyConfig) Validate() error {
	if c.Number < 0 {
		return errors.Wrap(errors.ErrInput, "negative number")
	}
	return c.Addr.Validate()
}
