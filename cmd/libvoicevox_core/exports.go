package main

/*
#include "voicevox_core.h"
*/
import "C"

import (
	"unsafe"

	"github.com/iabetor/voicevox-capi/internal/boundary"
	"github.com/iabetor/voicevox-capi/internal/resultcode"
)

func cString(p *byte) *C.char {
	return (*C.char)(unsafe.Pointer(p))
}

func resultCode(c resultcode.Code) C.VoicevoxResultCode {
	return C.VoicevoxResultCode(c)
}

// ---- 初始化 ----

//export voicevox_make_default_initialize_options
func voicevox_make_default_initialize_options() C.VoicevoxInitializeOptions {
	d := boundary.DefaultInitializeOptions()
	return C.VoicevoxInitializeOptions{
		acceleration_mode:   C.VoicevoxAccelerationMode(d.AccelerationMode),
		cpu_num_threads:     C.uint16_t(d.CPUNumThreads),
		load_all_models:     C.bool(d.LoadAllModels),
		open_jtalk_dict_dir: nil,
	}
}

//export voicevox_initialize
func voicevox_initialize(options C.VoicevoxInitializeOptions) C.VoicevoxResultCode {
	return resultCode(api.Initialize(boundary.InitializeOptions{
		AccelerationMode: int32(options.acceleration_mode),
		CPUNumThreads:    uint16(options.cpu_num_threads),
		LoadAllModels:    bool(options.load_all_models),
		OpenJTalkDictDir: (*byte)(unsafe.Pointer(options.open_jtalk_dict_dir)),
	}))
}

//export voicevox_get_version
func voicevox_get_version() *C.char {
	return cString(api.Version())
}

//export voicevox_load_model
func voicevox_load_model(speaker_id C.uint32_t) C.VoicevoxResultCode {
	return resultCode(api.LoadModel(uint32(speaker_id)))
}

//export voicevox_is_gpu_mode
func voicevox_is_gpu_mode() C.bool {
	return C.bool(api.IsGPUMode())
}

//export voicevox_is_model_loaded
func voicevox_is_model_loaded(speaker_id C.uint32_t) C.bool {
	return C.bool(api.IsModelLoaded(uint32(speaker_id)))
}

//export voicevox_finalize
func voicevox_finalize() {
	api.Finalize()
}

//export voicevox_get_metas_json
func voicevox_get_metas_json() *C.char {
	return cString(api.MetasJSON())
}

//export voicevox_get_supported_devices_json
func voicevox_get_supported_devices_json() *C.char {
	return cString(api.SupportedDevicesJSON())
}

// ---- 分步推理 ----

//export voicevox_predict_duration
func voicevox_predict_duration(length C.uintptr_t, phoneme_vector *C.int64_t, speaker_id C.uint32_t,
	output_predict_duration_data_length *C.uintptr_t, output_predict_duration_data **C.float) C.VoicevoxResultCode {
	return resultCode(api.PredictDuration(
		uintptr(length),
		(*int64)(unsafe.Pointer(phoneme_vector)),
		uint32(speaker_id),
		(*uintptr)(unsafe.Pointer(output_predict_duration_data_length)),
		(**float32)(unsafe.Pointer(output_predict_duration_data)),
	))
}

//export voicevox_predict_duration_data_free
func voicevox_predict_duration_data_free(predict_duration_data *C.float) {
	api.PredictDurationDataFree((*float32)(unsafe.Pointer(predict_duration_data)))
}

//export voicevox_predict_intonation
func voicevox_predict_intonation(length C.uintptr_t,
	vowel_phoneme_vector, consonant_phoneme_vector, start_accent_vector, end_accent_vector,
	start_accent_phrase_vector, end_accent_phrase_vector *C.int64_t,
	speaker_id C.uint32_t,
	output_predict_intonation_data_length *C.uintptr_t, output_predict_intonation_data **C.float) C.VoicevoxResultCode {
	return resultCode(api.PredictIntonation(
		uintptr(length),
		(*int64)(unsafe.Pointer(vowel_phoneme_vector)),
		(*int64)(unsafe.Pointer(consonant_phoneme_vector)),
		(*int64)(unsafe.Pointer(start_accent_vector)),
		(*int64)(unsafe.Pointer(end_accent_vector)),
		(*int64)(unsafe.Pointer(start_accent_phrase_vector)),
		(*int64)(unsafe.Pointer(end_accent_phrase_vector)),
		uint32(speaker_id),
		(*uintptr)(unsafe.Pointer(output_predict_intonation_data_length)),
		(**float32)(unsafe.Pointer(output_predict_intonation_data)),
	))
}

//export voicevox_predict_intonation_data_free
func voicevox_predict_intonation_data_free(predict_intonation_data *C.float) {
	api.PredictIntonationDataFree((*float32)(unsafe.Pointer(predict_intonation_data)))
}

//export voicevox_decode
func voicevox_decode(length C.uintptr_t, phoneme_size C.uintptr_t, f0 *C.float, phoneme_vector *C.float,
	speaker_id C.uint32_t, output_decode_data_length *C.uintptr_t, output_decode_data **C.float) C.VoicevoxResultCode {
	return resultCode(api.Decode(
		uintptr(length),
		uintptr(phoneme_size),
		(*float32)(unsafe.Pointer(f0)),
		(*float32)(unsafe.Pointer(phoneme_vector)),
		uint32(speaker_id),
		(*uintptr)(unsafe.Pointer(output_decode_data_length)),
		(**float32)(unsafe.Pointer(output_decode_data)),
	))
}

//export voicevox_decode_data_free
func voicevox_decode_data_free(decode_data *C.float) {
	api.DecodeDataFree((*float32)(unsafe.Pointer(decode_data)))
}

// ---- AudioQuery / 合成 ----

//export voicevox_make_default_audio_query_options
func voicevox_make_default_audio_query_options() C.VoicevoxAudioQueryOptions {
	d := boundary.DefaultAudioQueryOptions()
	return C.VoicevoxAudioQueryOptions{kana: C.bool(d.Kana)}
}

//export voicevox_audio_query
func voicevox_audio_query(text *C.char, speaker_id C.uint32_t, options C.VoicevoxAudioQueryOptions,
	output_audio_query_json **C.char) C.VoicevoxResultCode {
	return resultCode(api.AudioQuery(
		(*byte)(unsafe.Pointer(text)),
		uint32(speaker_id),
		boundary.AudioQueryOptions{Kana: bool(options.kana)},
		(**byte)(unsafe.Pointer(output_audio_query_json)),
	))
}

//export voicevox_make_default_synthesis_options
func voicevox_make_default_synthesis_options() C.VoicevoxSynthesisOptions {
	d := boundary.DefaultSynthesisOptions()
	return C.VoicevoxSynthesisOptions{enable_interrogative_upspeak: C.bool(d.EnableInterrogativeUpspeak)}
}

//export voicevox_synthesis
func voicevox_synthesis(audio_query_json *C.char, speaker_id C.uint32_t, options C.VoicevoxSynthesisOptions,
	output_wav_length *C.uintptr_t, output_wav **C.uint8_t) C.VoicevoxResultCode {
	return resultCode(api.Synthesis(
		(*byte)(unsafe.Pointer(audio_query_json)),
		uint32(speaker_id),
		boundary.SynthesisOptions{EnableInterrogativeUpspeak: bool(options.enable_interrogative_upspeak)},
		(*uintptr)(unsafe.Pointer(output_wav_length)),
		(**uint8)(unsafe.Pointer(output_wav)),
	))
}

//export voicevox_make_default_tts_options
func voicevox_make_default_tts_options() C.VoicevoxTtsOptions {
	d := boundary.DefaultTtsOptions()
	return C.VoicevoxTtsOptions{
		kana:                         C.bool(d.Kana),
		enable_interrogative_upspeak: C.bool(d.EnableInterrogativeUpspeak),
	}
}

//export voicevox_tts
func voicevox_tts(text *C.char, speaker_id C.uint32_t, options C.VoicevoxTtsOptions,
	output_wav_length *C.uintptr_t, output_wav **C.uint8_t) C.VoicevoxResultCode {
	return resultCode(api.TTS(
		(*byte)(unsafe.Pointer(text)),
		uint32(speaker_id),
		boundary.TtsOptions{
			Kana:                       bool(options.kana),
			EnableInterrogativeUpspeak: bool(options.enable_interrogative_upspeak),
		},
		(*uintptr)(unsafe.Pointer(output_wav_length)),
		(**uint8)(unsafe.Pointer(output_wav)),
	))
}

// ---- 释放 ----

// voicevox_audio_query_json_free 直接释放内存，不经过登记表。
//
//export voicevox_audio_query_json_free
func voicevox_audio_query_json_free(audio_query_json *C.char) {
	api.AudioQueryJSONFree((*byte)(unsafe.Pointer(audio_query_json)))
}

//export voicevox_wav_free
func voicevox_wav_free(wav *C.uint8_t) {
	api.WavFree((*uint8)(unsafe.Pointer(wav)))
}

//export voicevox_error_result_to_message
func voicevox_error_result_to_message(result_code C.VoicevoxResultCode) *C.char {
	return cString(api.ErrorResultToMessage(int32(result_code)))
}
