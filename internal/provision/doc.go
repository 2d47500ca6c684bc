// Package provision implements best-effort dispatch of notification-identity
// provisioning work.
//
// # Components
//
//   - [Provisioner] — the external push-identity system (associate /
//     disassociate the signed-in user with a delivery identity).
//   - [Dispatcher] — bounded queue plus worker goroutine. Submission never
//     blocks; overflow is counted, execution failures are logged and counted,
//     and neither ever reaches the caller.
//
// # Architecture boundaries
//
// The Engine decides WHEN to provision; this package only decides HOW the
// work is queued, executed, and accounted for. Bookkeeping (recording the
// last provisioned token) is injected as a callback so this package stays
// free of storage concerns.
//
// # What this package must NOT do
//
//   - Return provisioning errors to the submitter. The channel is
//     best-effort by contract.
//   - Import the root package or any sibling internal package.
package provision
