// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package xline

import "fmt"

// Coefficient identifies a device-resident calibration parameter, read and
// written as a 32-bit float. The set of meaningful identifiers depends on
// the firmware line (v5.20 / v5.21 / v5.24); the codes themselves are fixed.
type Coefficient byte

const (
	// Threshold of the square root function, >0 if sqrt is in use.
	CoeffThresholdSquareRoot Coefficient = 53
	// Offset of pressure sensor P1, default 0.0 bar.
	CoeffPressureOffsetP1 Coefficient = 64
	// Gain factor of pressure sensor P1, default 1.0.
	CoeffGainFactorP1 Coefficient = 65
	// Offset of pressure sensor P2, default 0.0 bar.
	CoeffPressureOffsetP2 Coefficient = 66
	// Gain factor of pressure sensor P2, default 1.0.
	CoeffGainFactorP2 Coefficient = 67
	// Offset of the analogue output, bar (v5.20 / v5.24).
	CoeffOffsetAnalogOutput Coefficient = 68
	// Gain factor of the analogue output (v5.20 / v5.24).
	CoeffGainFactorAnalogOutput Coefficient = 69
	// Offset of CH0, default 0.0 (v5.20 / v5.24).
	CoeffOffsetCH0 Coefficient = 70
	// Gain factor of CH0, default 1.0 (v5.20 / v5.24).
	CoeffGainFactorCH0 Coefficient = 71
	// Offset of temperature sensor T in °C (v5.21 / v5.24). On v5.20 this
	// identifier is the upper threshold for switching output 1 instead.
	CoeffTemperatureOffsetT Coefficient = 72
	// Lower threshold for switching output 1 (v5.20 only).
	CoeffLowerThresholdSw1 Coefficient = 73
	// Offset of temperature sensor TOB1 in °C (v5.21 / v5.24).
	CoeffTemperatureOffsetTOB1 Coefficient = 74
	// Offset of temperature sensor TOB2 in °C (v5.21 / v5.24).
	CoeffTemperatureOffsetTOB2 Coefficient = 76
	// Upper threshold for switching output 2 (v5.20 only).
	CoeffUpperThresholdSw2 Coefficient = 78
	// Lower threshold for switching output 2 (v5.20 only).
	CoeffLowerThresholdSw2 Coefficient = 79

	// 100..111 are free coefficients for customer use.
	CoeffFree100 Coefficient = 100
	CoeffFree101 Coefficient = 101
	CoeffFree102 Coefficient = 102
	CoeffFree103 Coefficient = 103
	CoeffFree104 Coefficient = 104
	CoeffFree105 Coefficient = 105
	CoeffFree106 Coefficient = 106
	CoeffFree107 Coefficient = 107
	CoeffFree108 Coefficient = 108
	CoeffFree109 Coefficient = 109
	CoeffFree110 Coefficient = 110
	CoeffFree111 Coefficient = 111

	// Conductivity gains per range and compensation (v5.21 only).
	CoeffGainCondRange1 Coefficient = 121
	CoeffGainCondRange2 Coefficient = 122
	CoeffGainCondRange3 Coefficient = 123
	CoeffGainCondRange4 Coefficient = 124
	// Conductivity temperature coefficient, default 0.022 (water).
	CoeffConductivityTempCoeff Coefficient = 126
	// Conductivity cell constant, default 1.00.
	CoeffConductivityCellConstant Coefficient = 127

	// 140..156 hold the CH0 straight-line curve fitting of P1 (v5.24 only).
	CoeffCH0CurveP1First Coefficient = 140
	CoeffCH0CurveP1Last  Coefficient = 156
)

// Configuration identifies a device-resident single-byte setting.
type Configuration byte

const (
	CfgPressure           Configuration = 0
	CfgTemperature        Configuration = 1
	CfgCH0                Configuration = 2
	CfgTempIntervalSec    Configuration = 3
	CfgTempComp           Configuration = 4
	CfgFilter             Configuration = 7
	CfgDAC                Configuration = 9
	CfgUART               Configuration = 10
	CfgFilterFactory      Configuration = 11
	CfgStatus             Configuration = 12
	CfgDeviceAddress      Configuration = 13
	CfgPMode              Configuration = 14
	CfgSPS                Configuration = 15
	CfgSDI12              Configuration = 20
	CfgInterframeTime9k6  Configuration = 25
	CfgInterframeTime115k Configuration = 26
	CfgConOn              Configuration = 28
	CfgConRange           Configuration = 31
	CfgConTempCompMode    Configuration = 32
	CfgSDI12Available     Configuration = 33
)

// Channel selects a measurement channel for the read-channel commands.
type Channel byte

const (
	ChannelCH0    Channel = 0
	ChannelP1     Channel = 1
	ChannelP2     Channel = 2
	ChannelT      Channel = 3
	ChannelTOB1   Channel = 4
	ChannelTOB2   Channel = 5
	ChannelConTC  Channel = 10
	ChannelConRaw Channel = 11
)

func (ch Channel) String() string {
	switch ch {
	case ChannelCH0:
		return "CH0"
	case ChannelP1:
		return "P1"
	case ChannelP2:
		return "P2"
	case ChannelT:
		return "T"
	case ChannelTOB1:
		return "TOB1"
	case ChannelTOB2:
		return "TOB2"
	case ChannelConTC:
		return "ConTc"
	case ChannelConRaw:
		return "ConRaw"
	}
	return fmt.Sprintf("Channel(%d)", byte(ch))
}

// ParseChannel maps a channel name as used in configuration files and on
// the wire protocol documentation back to its code.
func ParseChannel(name string) (Channel, error) {
	switch name {
	case "CH0":
		return ChannelCH0, nil
	case "P1":
		return ChannelP1, nil
	case "P2":
		return ChannelP2, nil
	case "T":
		return ChannelT, nil
	case "TOB1":
		return ChannelTOB1, nil
	case "TOB2":
		return ChannelTOB2, nil
	case "ConTc":
		return ChannelConTC, nil
	case "ConRaw":
		return ChannelConRaw, nil
	}
	return 0, fmt.Errorf("xline: unknown channel %q", name)
}

// ZeroCommand selects the target of a zeroing operation.
type ZeroCommand byte

const (
	ZeroSetP1     ZeroCommand = 0
	ZeroResetP1   ZeroCommand = 1
	ZeroSetP2     ZeroCommand = 2
	ZeroResetP2   ZeroCommand = 3
	ZeroSetCH0    ZeroCommand = 6
	ZeroResetCH0  ZeroCommand = 7
	ZeroSetT      ZeroCommand = 8
	ZeroResetT    ZeroCommand = 9
	ZeroSetTOB1   ZeroCommand = 10
	ZeroResetTOB1 ZeroCommand = 11
	ZeroSetTOB2   ZeroCommand = 12
	ZeroResetTOB2 ZeroCommand = 13
)
