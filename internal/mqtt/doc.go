// Package mqtt bridges the engine to an MQTT broker.
//
// Sensors report state changes on <prefix>/sensors/<id>/state with a JSON
// payload such as {"active": true}. The bridge publishes the alarm and arming
// status as retained messages on <prefix>/alarm/status and
// <prefix>/arming/status after every change.
package mqtt
