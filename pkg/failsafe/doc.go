// Package failsafe implements the commissioning fail-safe for meshprov
// devices.
//
// A commissioner arms the fail-safe before it changes network configuration.
// While armed, configuration edits stay staged. CommissioningComplete disarms
// the fail-safe and makes the edits permanent; if the fail-safe expires first,
// the device reverts to the last committed configuration.
//
// # Expiry
//
// Each Arm sets the expiry relative to now (default: 60 seconds). Re-arming
// extends the fail-safe, but never past MaxCumulativeExpiry (900 seconds)
// after it was first armed. Arming with an expiry of zero expires the
// fail-safe immediately.
//
// # Timer Behavior
//
//   - DISARMED -> ARMED on Arm
//   - ARMED -> DISARMED on Disarm
//   - ARMED -> EXPIRED when the expiry passes; OnExpire callbacks run
//   - EXPIRED -> ARMED on the next Arm
package failsafe
