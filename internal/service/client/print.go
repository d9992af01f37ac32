package client

import (
	"fmt"
	"io"
	"text/tabwriter"

	pb "github.com/oshokin/home-security/internal/pb/v1"
)

// PrintStatus renders the engine state.
func PrintStatus(w io.Writer, state *pb.StatusResponse) error {
	if _, err := fmt.Fprintf(w, "Alarm:  %s\nArming: %s\nCat:    %t\n\n",
		state.GetAlarmStatus(), state.GetArmingStatus(), state.GetCatDetected()); err != nil {
		return err
	}

	return PrintSensors(w, state.GetSensors())
}

// PrintSensors renders sensors as an aligned table.
func PrintSensors(w io.Writer, sensors []*pb.Sensor) error {
	if len(sensors) == 0 {
		_, err := fmt.Fprintln(w, "No sensors registered.")

		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "ID\tNAME\tTYPE\tACTIVE")

	for _, sensor := range sensors {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n",
			sensor.GetId(), sensor.GetName(), sensor.GetType(), sensor.GetActive())
	}

	return tw.Flush()
}
