package cli_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahmaliyi/otpvault/cli"
	"github.com/fahmaliyi/otpvault/config"
	"github.com/fahmaliyi/otpvault/totp"
	"github.com/fahmaliyi/otpvault/vault"
)

type fakeClipboard struct {
	values []string
	err    error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.values = append(c.values, text)
	return nil
}

type result struct {
	out  string
	clip *fakeClipboard
	err  error
}

func run(t *testing.T, dir, input string, args ...string) result {
	t.Helper()
	out := &bytes.Buffer{}
	clip := &fakeClipboard{}
	app := &cli.App{
		Config:    &config.Config{Dir: dir, File: "test.dat", Digits: 6},
		In:        strings.NewReader(input),
		Out:       out,
		Clipboard: clip,
	}
	root := cli.NewRootCommand(app)
	root.SetArgs(args)
	err := root.Execute()
	return result{out: out.String(), clip: clip, err: err}
}

var codeLine = regexp.MustCompile(`\r(\d{6}) \(remain (\d+)s\) \n$`)

func TestAddListViewDefaultPassword(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	r := run(t, dir, "\n\n", "add", "github", "jbsw y3dp ehpk 3pxp")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "New password: ")
	assert.Contains(t, r.out, "Confirm password: ")
	assert.Contains(t, r.out, "Added successfully")

	raw, err := os.ReadFile(filepath.Join(dir, "test.dat"))
	require.NoError(t, err)
	assert.Equal(t, byte(vault.DefaultPassword), raw[vault.NonceLen])

	r = run(t, dir, "", "list")
	require.NoError(t, r.err)
	assert.Equal(t, "1. github\n", r.out)

	r = run(t, dir, "")
	require.NoError(t, r.err)
	m := codeLine.FindStringSubmatch(r.out)
	require.NotNil(t, m, "unexpected output %q", r.out)
	assert.Equal(t, []string{m[1]}, r.clip.values)
}

func TestAddUserPassword(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	r := run(t, dir, "pw\npw\n", "add", "github", "JBSWY3DPEHPK3PXP")
	require.NoError(t, r.err)

	r = run(t, dir, "pw\n", "add", "gitlab", "MFRGGZDFMZTWQ2LK")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Password: ")
	assert.NotContains(t, r.out, "New password: ")

	r = run(t, dir, "pw\n", "list")
	require.NoError(t, r.err)
	assert.Equal(t, "Password: 1. github\n2. gitlab\n", r.out)

	r = run(t, dir, "wrong\n", "list")
	assert.ErrorIs(t, r.err, vault.ErrWrongPassword)
	assert.Equal(t, "Wrong password!", cli.Describe(r.err))
}

func TestAddReplacesExistingAccount(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, run(t, dir, "\n\n", "add", "github", "JBSWY3DPEHPK3PXP").err)
	r := run(t, dir, "", "add", "github", "MFRGGZDFMZTWQ2LK")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Replacing existing account github")

	r = run(t, dir, "", "list")
	require.NoError(t, r.err)
	assert.Equal(t, "1. github\n", r.out)
}

func TestAddRejectsInvalidKey(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	r := run(t, dir, "", "add", "github", "not-base32!")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "not a valid base32 encoding")

	var kerr *totp.KeyDecodeError
	assert.True(t, errors.As(r.err, &kerr))

	_, err := os.Stat(filepath.Join(dir, "test.dat"))
	assert.True(t, os.IsNotExist(err))
}

func TestAddRequiresKey(t *testing.T) {
	t.Parallel()
	r := run(t, t.TempDir(), "", "add", "github")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "requires an account name and a secret key")
}

func TestAddFromURI(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	r := run(t, dir, "\n\n", "add", "otpauth://totp/ACME:alice?secret=jbswy3dpehpk3pxp&issuer=ACME")
	require.NoError(t, r.err)

	r = run(t, dir, "", "add", "work", "otpauth://totp/Other:bob?secret=MFRGGZDFMZTWQ2LK")
	require.NoError(t, r.err)

	r = run(t, dir, "", "list")
	require.NoError(t, r.err)
	assert.Equal(t, "1. ACME:alice\n2. work\n", r.out)

	r = run(t, dir, "", "add", "otpauth://totp/x?secret=JBSWY3DPEHPK3PXP&algorithm=SHA512")
	assert.ErrorIs(t, r.err, totp.ErrUnsupportedURI)
}

func TestAddRejectsInvalidUTF8Name(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "\n\n", "add", "github", "JBSWY3DPEHPK3PXP").err)

	r := run(t, dir, "", "add", "bad\xffname", "MFRGGZDFMZTWQ2LK")
	assert.ErrorIs(t, r.err, vault.ErrInvalidAccount)
	assert.NotContains(t, r.out, "Added")

	r = run(t, dir, "", "add", "otpauth://totp/caf%E9?secret=MFRGGZDFMZTWQ2LK")
	assert.ErrorIs(t, r.err, vault.ErrInvalidAccount)
	assert.NotContains(t, r.out, "Added")

	r = run(t, dir, "", "list")
	require.NoError(t, r.err)
	assert.Equal(t, "1. github\n", r.out)
}

func TestAddPasswordMismatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	r := run(t, dir, "a\nb\nc\nd\ne\nf\n", "add", "github", "JBSWY3DPEHPK3PXP")
	assert.ErrorIs(t, r.err, vault.ErrWrongPassword)
	assert.Equal(t, 2, strings.Count(r.out, "Different password, try again!"))

	info, err := os.Stat(filepath.Join(dir, "test.dat"))
	require.NoError(t, err)
	assert.Zero(t, info.Size(), "nothing may be written after a failed setup")
}

func TestDelete(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "\n\n", "add", "github", "JBSWY3DPEHPK3PXP").err)
	require.NoError(t, run(t, dir, "", "add", "gitlab", "MFRGGZDFMZTWQ2LK").err)

	r := run(t, dir, "n\n", "delete", "github")
	require.NoError(t, r.err)
	assert.Equal(t, "Are you sure you want to delete github [N/y]? Abort.\n", r.out)

	r = run(t, dir, "Y\n", "delete", "github")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Account github has been deleted.")

	r = run(t, dir, "", "delete", "github")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "account github is not found")

	r = run(t, dir, "", "delete", "-y", "gitlab")
	require.NoError(t, r.err)
	assert.Equal(t, "Account gitlab has been deleted.\n", r.out)

	r = run(t, dir, "", "list")
	require.NoError(t, r.err)
	assert.Equal(t, "No accounts\n", r.out)
}

func TestPasswordChange(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "\n\n", "add", "github", "JBSWY3DPEHPK3PXP").err)

	r := run(t, dir, "new\nnew\n", "password")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Change password successfully")

	r = run(t, dir, "new\n", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "1. github")

	r = run(t, dir, "new\n\n\n", "password")
	require.NoError(t, r.err)

	r = run(t, dir, "", "list")
	require.NoError(t, r.err)
	assert.Equal(t, "1. github\n", r.out)
}

func TestViewPlainSelection(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "\n\n", "add", "github", "JBSWY3DPEHPK3PXP").err)
	require.NoError(t, run(t, dir, "", "add", "gitlab", "MFRGGZDFMZTWQ2LK").err)

	r := run(t, dir, "x\n5\n2\n", "view", "--plain", "--digits", "6")
	require.NoError(t, r.err)
	assert.True(t, strings.HasPrefix(r.out, "1. github\n2. gitlab\nselect: "))
	assert.Contains(t, r.out, "Invalid number: x")
	assert.Contains(t, r.out, "Number should be in 1..2")
	require.Regexp(t, codeLine, r.out)
	require.Len(t, r.clip.values, 1)
	assert.Equal(t, codeLine.FindStringSubmatch(r.out)[1], r.clip.values[0])
}

func TestViewSelectionEOF(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "\n\n", "add", "a", "JBSWY3DPEHPK3PXP").err)
	require.NoError(t, run(t, dir, "", "add", "b", "MFRGGZDFMZTWQ2LK").err)

	r := run(t, dir, "", "view")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "failed to read input")
}

func TestViewEmptyVault(t *testing.T) {
	t.Parallel()
	r := run(t, t.TempDir(), "")
	require.Error(t, r.err)
	assert.Equal(t, "add an account before viewing", r.err.Error())
}

func TestViewCorruptPersistedSecret(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	v := vault.NewVault(filepath.Join(dir, "test.dat"), nil)
	_, err := v.Save(&vault.State{Mode: vault.DefaultPassword, Accounts: map[string]string{"bad": "not-base32!"}})
	require.NoError(t, err)

	r := run(t, dir, "")
	var kerr *totp.KeyDecodeError
	require.ErrorAs(t, r.err, &kerr)
	assert.Equal(t, "not-base32!", kerr.Key)
}

func TestInvalidDataFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.dat"), []byte("short"), 0o600))

	r := run(t, dir, "", "list")
	assert.ErrorIs(t, r.err, vault.ErrInvalidDataFile)
	assert.Equal(t, "Invalid data file", cli.Describe(r.err))
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", cli.Describe(nil))
	assert.Equal(t, "Home directory not found", cli.Describe(vault.ErrHomeDirNotFound))
	assert.Equal(t, "boom", cli.Describe(errors.New("boom")))

	_, err := totp.New("not-base32!")
	assert.Contains(t, cli.Describe(err), `Invalid key "not-base32!"`)
}
