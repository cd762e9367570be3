// Package models defines the core domain models for the subscription
// tracker.
//
// # Models
//
//   - Subscription: a recurring payment with an inline participant list
//   - InlineParticipant: the denormalized {name, isMe} entry stored on a
//     subscription
//   - Participant: the normalized, identity-bearing directory record with
//     back-references to subscriptions
//
// # Design Principles
//
//  1. **Cent-exact amounts**: money is always an integer number of minor
//     currency units; floating point never touches an amount.
//  2. **Avoid circular references**: relationships use ID strings, never
//     pointers between records.
//  3. **Snapshot-stable JSON**: the field tags are the on-disk snapshot
//     format; optional fields are pointers so absence serializes as null.
//
// A subscription's inline participants and the participant directory can
// diverge (deleting a subscription does not cascade); consumers of both
// are expected to tolerate that.
package models
