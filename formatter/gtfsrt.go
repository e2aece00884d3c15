package formatter

import (
	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// knotsToMetersPerSecond converts AIS speed over ground to GTFS-RT speed.
const knotsToMetersPerSecond = 1852.0 / 3600.0

// BuildGTFSRT serializes an aggregate as a GTFS-Realtime FeedMessage
func (rb *ResponseBuilder) BuildGTFSRT(agg *Aggregate) ([]byte, error) {
	return proto.Marshal(FeedMessage(agg))
}

// FeedMessage maps every vessel to a VehiclePosition entity keyed by MMSI.
// Entity timestamps come from the report when it parses, else the header.
func FeedMessage(agg *Aggregate) *gtfsrtpb.FeedMessage {
	published := uint64(0)
	if !agg.PublishedAt.IsZero() {
		published = unixSeconds(agg.PublishedAt.Unix())
	}
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(published),
		},
		Entity: make([]*gtfsrtpb.FeedEntity, 0, len(agg.Vessels)),
	}
	for _, v := range agg.Vessels {
		ts := published
		if parsed, ok := extractTimestamp(v.Timestamp); ok {
			ts = unixSeconds(parsed)
		}
		fm.Entity = append(fm.Entity, &gtfsrtpb.FeedEntity{
			Id: proto.String(v.MMSI),
			Vehicle: &gtfsrtpb.VehiclePosition{
				Vehicle: &gtfsrtpb.VehicleDescriptor{
					Id:    proto.String(v.MMSI),
					Label: proto.String(v.MMSI),
				},
				Position: &gtfsrtpb.Position{
					Latitude:  proto.Float32(float32(v.Lat)),
					Longitude: proto.Float32(float32(v.Lon)),
					Bearing:   proto.Float32(float32(v.Heading)),
					Speed:     proto.Float32(float32(v.SOG * knotsToMetersPerSecond)),
				},
				Timestamp: proto.Uint64(ts),
			},
		})
	}
	return fm
}

// unixSeconds converts to the unsigned GTFS-RT timestamp; instants before the
// epoch become 0.
func unixSeconds(sec int64) uint64 {
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
