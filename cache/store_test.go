package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(BucketShifts, "s1", []byte(`{"id":"s1"}`)))

	got, err := store.Get(BucketShifts, "s1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"s1"}`), got)

	// same key in another bucket is independent
	got, err = store.Get(BucketTasks, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutOverwrites(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(BucketTasks, "t1", []byte(`{"v":1}`)))
	require.NoError(t, store.Put(BucketTasks, "t1", []byte(`{"v":2}`)))

	got, err := store.Get(BucketTasks, "t1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":2}`), got)

	values, err := store.List(BucketTasks)
	require.NoError(t, err)
	assert.Len(t, values, 1)
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(BucketTasks, "t1", []byte(`{}`)))
	require.NoError(t, store.Delete(BucketTasks, "t1"))

	got, err := store.Get(BucketTasks, "t1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// deleting an absent key is not an error
	assert.NoError(t, store.Delete(BucketTasks, "missing"))
}

func TestReplaceSwapsCleanRows(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(BucketShifts, "old", []byte(`{"id":"old"}`)))

	require.NoError(t, store.Replace(BucketShifts, map[string][]byte{
		"a": []byte(`{"id":"a"}`),
		"b": []byte(`{"id":"b"}`),
	}))

	values, err := store.List(BucketShifts)
	require.NoError(t, err)
	assert.Len(t, values, 2)

	gone, err := store.Get(BucketShifts, "old")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestReplaceKeepsDirtyRows(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(BucketShifts, "local", []byte(`{"id":"local","status":"unsynced"}`)))
	require.NoError(t, store.MarkDirty(BucketShifts, "local"))

	// a refresh carrying a stale copy of the same key must not clobber it
	require.NoError(t, store.Replace(BucketShifts, map[string][]byte{
		"local":  []byte(`{"id":"local","status":"stale"}`),
		"remote": []byte(`{"id":"remote"}`),
	}))

	got, err := store.Get(BucketShifts, "local")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"local","status":"unsynced"}`), got)

	got, err = store.Get(BucketShifts, "remote")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDirtyLifecycle(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(BucketLeaveRequests, "l1", []byte(`{"id":"l1"}`)))
	require.NoError(t, store.Put(BucketLeaveRequests, "l2", []byte(`{"id":"l2"}`)))
	require.NoError(t, store.MarkDirty(BucketLeaveRequests, "l1"))

	dirty, err := store.ListDirty(BucketLeaveRequests)
	require.NoError(t, err)
	require.Len(t, dirty, 1)
	assert.Contains(t, dirty, "l1")

	require.NoError(t, store.ClearDirty(BucketLeaveRequests, "l1"))

	dirty, err = store.ListDirty(BucketLeaveRequests)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestPutResetsDirtyFlag(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(BucketTasks, "t1", []byte(`{"v":1}`)))
	require.NoError(t, store.MarkDirty(BucketTasks, "t1"))
	require.NoError(t, store.Put(BucketTasks, "t1", []byte(`{"v":2}`)))

	dirty, err := store.ListDirty(BucketTasks)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestClearAll(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(BucketShifts, "s1", []byte(`{}`)))
	require.NoError(t, store.PutSetting(SettingAuthenticated, "true"))

	require.NoError(t, store.ClearAll())

	values, err := store.List(BucketShifts)
	require.NoError(t, err)
	assert.Empty(t, values)

	val, err := store.GetSetting(SettingAuthenticated)
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestSettings(t *testing.T) {
	store := openTestStore(t)

	val, err := store.GetSetting(SettingPushToken)
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, store.PutSetting(SettingPushToken, "tok-1"))
	require.NoError(t, store.PutSetting(SettingPushToken, "tok-2"))

	val, err = store.GetSetting(SettingPushToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", val)

	require.NoError(t, store.DeleteSetting(SettingPushToken))
	val, err = store.GetSetting(SettingPushToken)
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestJSONHelpers(t *testing.T) {
	store := openTestStore(t)

	type row struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	}

	missing, err := GetJSON[row](store, BucketReports, "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, PutJSON(store, BucketReports, "r1", row{ID: "r1", Count: 3}))

	got, err := GetJSON[row](store, BucketReports, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, row{ID: "r1", Count: 3}, *got)
}

func TestListJSONSkipsUndecodableRows(t *testing.T) {
	store := openTestStore(t)

	type row struct {
		ID string `json:"id"`
	}

	require.NoError(t, PutJSON(store, BucketTasks, "good", row{ID: "good"}))
	require.NoError(t, store.Put(BucketTasks, "bad", []byte(`{not json`)))

	rows, err := ListJSON[row](store, BucketTasks)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "good", rows[0].ID)
}
