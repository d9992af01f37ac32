// Package image holds the image classification collaborators.
//
// Service answers whether a camera frame plausibly shows a cat. RemoteService
// asks an HTTP label-detection endpoint, FakeService flips a coin and is used
// when no classifier is configured.
package image
