package hostlib

import (
	"testing"

	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

func TestListLenAndNth(t *testing.T) {
	linker := runtimeenv.NewLinker()
	Register(linker)

	lenHook, _ := linker.ResolveHook("list-len")
	tup := value.NewTuple(value.Int32(10), value.Int32(20), value.Int32(30))
	v, err := lenHook([]value.Value{tup})
	if err != nil || v != value.Int32(3) {
		t.Fatalf("v=%v err=%v", v, err)
	}

	nthHook, _ := linker.ResolveHook("list-nth")
	v, err = nthHook([]value.Value{tup, value.Int32(1)})
	if err != nil || v != value.Int32(20) {
		t.Fatalf("v=%v err=%v", v, err)
	}

	_, err = nthHook([]value.Value{tup, value.Int32(99)})
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestStringConcatAndIntToString(t *testing.T) {
	linker := runtimeenv.NewLinker()
	Register(linker)

	concat, _ := linker.ResolveHook("string-concat")
	v, err := concat([]value.Value{value.Str("foo"), value.Str("bar")})
	if err != nil || v != value.Str("foobar") {
		t.Fatalf("v=%v err=%v", v, err)
	}

	toStr, _ := linker.ResolveHook("int-to-string")
	v, err = toStr([]value.Value{value.Int64(42)})
	if err != nil || v != value.Str("42") {
		t.Fatalf("v=%v err=%v", v, err)
	}
}
