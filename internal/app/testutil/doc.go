// Package testutil provides testing utilities for lexscribe.
//
// It contains three groups of helpers:
//
// 1. Database helpers (db_helpers.go):
//   - NewSQLiteStore: an in-memory store with the full schema, closed on test cleanup
//   - SeedUser, SeedJob: insert fixture rows
//
// 2. Mocks (mock_*.go):
//   - MockProvider: testify mock of the batch transcription provider
//   - MemoryBlobStore: in-memory blob store with failure injection
//   - MockSummarizer: testify mock of the summarizer
//   - servicemock: testify mocks of the HTTP service layer, kept in a
//     sub-package because they import the packages tested with testutil
//
// 3. Fixtures (fixtures.go):
//   - sample provider result payloads and jobs
//
// # Usage
//
//	func TestSomething(t *testing.T) {
//	    store := testutil.NewSQLiteStore(t)
//	    provider := testutil.NewMockProvider(t)
//	    provider.On("Status", mock.Anything, handle).Return(testutil.Transcription(speech.StatusRunning, ""), nil)
//	}
package testutil
