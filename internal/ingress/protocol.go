// Package ingress is the scaffolding websocket front-end spec.md §1 calls
// out as an external collaborator, not part of the matching core: it parses
// the wire grammar of §6, turns each line into a common.Command, and shuttles
// it to the engine's single command loop through a ring.RingBuffer.
package ingress

import (
	"fmt"
	"strconv"
	"strings"

	"tickbook/internal/common"
	"tickbook/internal/engine"
)

// parseCommand parses one wire message of the form:
//
//	B <qty> <price> <ot> <tid>   bid
//	A <qty> <price> <ot> <tid>   ask
//	C <id> <tid>                 cancel
//	U <id> <qty> <tid>           update
//
// <ot> is 0=limit, 1=fill_and_kill, 2=market. A market tag resubmits through
// Engine's dedicated MarketBid/MarketAsk path, so the wire price field is
// parsed (it must be present) but discarded.
func parseCommand(line string) (common.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return common.Command{}, fmt.Errorf("ingress: empty message")
	}

	switch fields[0] {
	case "B", "A":
		if len(fields) != 5 {
			return common.Command{}, fmt.Errorf("ingress: %q wants 4 fields, got %d", fields[0], len(fields)-1)
		}
		qty, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return common.Command{}, fmt.Errorf("ingress: bad quantity: %w", err)
		}
		price, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return common.Command{}, fmt.Errorf("ingress: bad price: %w", err)
		}
		ot, err := parseOrderType(fields[3])
		if err != nil {
			return common.Command{}, err
		}
		tid, err := strconv.ParseUint(fields[4], 10, 64)
		if err != nil {
			return common.Command{}, fmt.Errorf("ingress: bad trader id: %w", err)
		}

		side := common.BidCommand
		if fields[0] == "A" {
			side = common.AskCommand
		}
		if ot == engine.Market {
			if fields[0] == "A" {
				side = common.MarketAskCommand
			} else {
				side = common.MarketBidCommand
			}
		}
		return common.Command{
			Kind:      side,
			Quantity:  qty,
			Price:     price,
			OrderType: ot,
			TraderID:  engine.TraderID(tid),
		}, nil

	case "C":
		if len(fields) != 3 {
			return common.Command{}, fmt.Errorf("ingress: %q wants 2 fields, got %d", fields[0], len(fields)-1)
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return common.Command{}, fmt.Errorf("ingress: bad order id: %w", err)
		}
		tid, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return common.Command{}, fmt.Errorf("ingress: bad trader id: %w", err)
		}
		return common.Command{
			Kind:     common.CancelCommand,
			OrderID:  engine.OrderID(id),
			TraderID: engine.TraderID(tid),
		}, nil

	case "U":
		if len(fields) != 4 {
			return common.Command{}, fmt.Errorf("ingress: %q wants 3 fields, got %d", fields[0], len(fields)-1)
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return common.Command{}, fmt.Errorf("ingress: bad order id: %w", err)
		}
		qty, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return common.Command{}, fmt.Errorf("ingress: bad quantity: %w", err)
		}
		tid, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return common.Command{}, fmt.Errorf("ingress: bad trader id: %w", err)
		}
		return common.Command{
			Kind:        common.UpdateCommand,
			OrderID:     engine.OrderID(id),
			NewQuantity: qty,
			TraderID:    engine.TraderID(tid),
		}, nil

	default:
		return common.Command{}, fmt.Errorf("ingress: unrecognized tag %q", fields[0])
	}
}

func parseOrderType(field string) (engine.OrderType, error) {
	switch field {
	case "0":
		return engine.Limit, nil
	case "1":
		return engine.FillAndKill, nil
	case "2":
		return engine.Market, nil
	default:
		return 0, fmt.Errorf("ingress: bad order type %q", field)
	}
}
