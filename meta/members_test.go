package meta

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Base struct {
	ID      int
	Name    string
	created time.Time
}

type Audit struct {
	By string `json:"by"`
}

type Account struct {
	Base
	*Audit
	Name     string
	Owner    interface{} `jsonio:"type=github.com/viant/jsonio/meta.Base"`
	Session  string      `jsonio:"transient"`
	Secret   string      `json:"-"`
	Hidden   string      `jsonio:"-"`
	Renamed  int         `json:"renamed,omitempty"`
	Alias    int         `jsonio:"name=alias"`
	Created  time.Time   `format:"dateFormat=yyyy-MM-dd"`
	_        int
	balance  float64
	Snake    string `format:"caseFormat=lowerUnderscore"`
	Labelled string `format:"name=label"`
}

func TestMembersOf(t *testing.T) {
	members, err := MembersOf(reflect.TypeOf(&Account{}))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Name", "Owner", "Session", "renamed", "alias", "Created", "balance", "snake", "label",
		"ID", "Base.Name", "created", "by",
	}, members.Names())

	owner := members.Lookup("Owner")
	require.NotNil(t, owner)
	assert.Equal(t, "github.com/viant/jsonio/meta.Base", owner.DefaultType)
	assert.True(t, members.Lookup("Session").Transient)
	assert.Equal(t, "2006-01-02", members.Lookup("Created").TimeLayout)
	assert.Nil(t, members.Lookup("Secret"))
	assert.Nil(t, members.Lookup("Hidden"))

	shadowed := members.Lookup("Base.Name")
	require.NotNil(t, shadowed)
	assert.Equal(t, reflect.TypeOf(Base{}), shadowed.Declaring)

	again, err := MembersOf(reflect.TypeOf(Account{}))
	require.NoError(t, err)
	assert.Same(t, members, again)
}

func TestMember_Access(t *testing.T) {
	members, err := MembersOf(reflect.TypeOf(Account{}))
	require.NoError(t, err)
	account := &Account{}
	holder := Holder(reflect.ValueOf(account))

	_, ok := members.Lookup("by").Get(holder)
	assert.False(t, ok, "nil embedded pointer")

	members.Lookup("by").Set(holder, reflect.ValueOf("admin"))
	require.NotNil(t, account.Audit)
	assert.Equal(t, "admin", account.By)

	members.Lookup("balance").Set(holder, reflect.ValueOf(12.5))
	assert.Equal(t, 12.5, account.balance)

	members.Lookup("Base.Name").Set(holder, reflect.ValueOf("base"))
	members.Lookup("Name").Set(holder, reflect.ValueOf("own"))
	assert.Equal(t, "base", account.Base.Name)
	assert.Equal(t, "own", account.Name)

	value, ok := members.Lookup("ID").Get(holder)
	require.True(t, ok)
	assert.Equal(t, 0, value.Interface())

	members.Lookup("Name").Set(holder, reflect.Value{})
	assert.Equal(t, "", account.Name)
}

func TestMembersOf_NonStruct(t *testing.T) {
	_, err := MembersOf(reflect.TypeOf(1))
	require.Error(t, err)
}
