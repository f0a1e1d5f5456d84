package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Decode parses an inbound frame into its event. Unknown tags decode to
// Unknown with a nil error; only unparsable frames return ErrMalformed.
func Decode(raw []byte) (Event, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}

	switch env.EventType {
	case TagParkData:
		return decodeData[ParkData](env)
	case TagPrestigeSystemData:
		return decodeData[PrestigeSystemData](env)
	case TagPrestigeUpgradePurchased:
		return decodeData[PrestigeUpgradePurchased](env)
	case TagRideRunning:
		ev, err := decodeData[RideRunning](env)
		if err != nil {
			return nil, err
		}
		if ev.ZoneID == "" {
			return nil, fmt.Errorf("%w: %s without zoneId", ErrMalformed, env.EventType)
		}
		return ev, nil
	case TagGameOver:
		return GameOver{}, nil
	case TagUnfreezeGuestTimers:
		return UnfreezeGuestTimers{}, nil
	case TagMilestoneUnlocked:
		return decodeData[MilestoneUnlocked](env)
	case TagGuestLeft:
		return decodeData[GuestLeft](env)
	case TagPrestigeCompleted:
		return decodeData[PrestigeCompleted](env)
	case TagPrestigeError:
		return decodeData[PrestigeError](env)
	case TagUpgradeError:
		return decodeData[UpgradeError](env)
	default:
		return Unknown{EventType: env.EventType}, nil
	}
}

// decodeData unmarshals the payload of a known tag. Empty or null payloads
// decode to the zero value.
func decodeData[T Event](env Envelope) (T, error) {
	var v T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrMalformed, env.EventType, err)
	}
	return v, nil
}

// Encoder stamps outbound commands with the client's source and the
// current time.
type Encoder struct {
	Source Source
	Now    func() time.Time
}

// NewEncoder creates an encoder for the given client type.
func NewEncoder(clientType string) *Encoder {
	if clientType == "" {
		clientType = DefaultClientType
	}
	return &Encoder{
		Source: Source{ClientType: clientType},
		Now:    time.Now,
	}
}

// Encode serialises a command into an envelope.
func (e *Encoder) Encode(cmd Command) ([]byte, error) {
	data, err := json.Marshal(cmd.payload())
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode %s: %w", cmd.Tag(), err)
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	env := Envelope{
		EventType:      cmd.Tag(),
		EventTimestamp: now().UnixMilli(),
		Source:         e.Source,
		Data:           data,
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode %s envelope: %w", cmd.Tag(), err)
	}
	return out, nil
}

// DecodeCommand is the inverse of Encode, for peers that read what a client
// sent. It returns the envelope alongside the command.
func DecodeCommand(raw []byte) (Command, Envelope, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, Envelope{}, err
	}

	unmarshal := func(v any) error {
		if len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, env.EventType, err)
		}
		return nil
	}

	switch env.EventType {
	case TagIdentify:
		var d identifyData
		if err := unmarshal(&d); err != nil {
			return nil, env, err
		}
		return Identify{Client: d.Client}, env, nil
	case TagAddToRide:
		var d addToRideData
		if err := unmarshal(&d); err != nil {
			return nil, env, err
		}
		return AddToRide{Guests: []string(d.Guests)}, env, nil
	case TagStartRide:
		var d startRideData
		if err := unmarshal(&d); err != nil {
			return nil, env, err
		}
		return StartRide{ZoneID: d.ZoneID, Guests: []string(d.Guests)}, env, nil
	case TagRideEnded:
		var zoneID string
		if err := unmarshal(&zoneID); err != nil {
			return nil, env, err
		}
		return RideEnded{ZoneID: zoneID}, env, nil
	case TagGlobalUpgrade:
		var d globalUpgradeData
		if err := unmarshal(&d); err != nil {
			return nil, env, err
		}
		return GlobalUpgrade{UpgradeType: d.UpgradeType}, env, nil
	case TagZoneUpgrade:
		var d zoneUpgradeData
		if err := unmarshal(&d); err != nil {
			return nil, env, err
		}
		return ZoneUpgrade{ZoneID: d.ZoneID, UpgradeType: d.UpgradeType}, env, nil
	case TagPurchasePrestigeUpgrade:
		var d purchasePrestigeUpgradeData
		if err := unmarshal(&d); err != nil {
			return nil, env, err
		}
		return PurchasePrestigeUpgrade{UpgradeID: d.UpgradeID}, env, nil
	case TagPrestigeReset:
		return PrestigeReset{}, env, nil
	case TagRestart:
		return Restart{}, env, nil
	default:
		return nil, env, fmt.Errorf("%w: unknown command %q", ErrMalformed, env.EventType)
	}
}

// EncodeEvent builds an inbound-style frame. Stub servers and tests use it
// to speak the server's side of the protocol.
func EncodeEvent(tag string, data any, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode %s: %w", tag, err)
	}
	return json.Marshal(Envelope{
		EventType:      tag,
		EventTimestamp: at.UnixMilli(),
		Source:         Source{ClientType: "SERVER"},
		Data:           payload,
	})
}
