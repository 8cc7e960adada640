// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apperror

// Client-facing messages. The site audience is Indonesian.
const (
	MsgInternal         = "Terjadi kesalahan pada server."
	MsgValidationFailed = "Validasi gagal."

	MsgInvalidCredentials    = "Kredensial tidak valid."
	MsgLoginFieldsRequired   = "Username dan password wajib diisi."
	MsgAllFieldsRequired     = "Semua field wajib diisi."
	MsgResetFieldsRequired   = "Password baru dan konfirmasi password wajib diisi."
	MsgPasswordMismatch      = "Password baru dan konfirmasi password tidak cocok."
	MsgPasswordTooShort      = "Password baru minimal harus 6 karakter."
	MsgPasswordTooLong       = "Password baru maksimal 72 byte."
	MsgWrongCurrentPassword  = "Password saat ini salah."
	MsgAdminNotFound         = "Admin tidak ditemukan."
	MsgUsernameRequired      = "Username wajib diisi."
	MsgResetRequested        = "Jika username Anda valid, instruksi untuk mereset password akan dikirim ke email admin yang terdaftar."
	MsgResetTokenInvalid     = "Token reset password tidak valid atau sudah kedaluwarsa."
	MsgResetSucceeded        = "Password berhasil direset. Anda sekarang bisa login dengan password baru Anda."
	MsgPasswordChanged       = "Password berhasil diubah."
	MsgLoginSucceeded        = "Login berhasil."
	MsgResetEmailFailed      = "Gagal mengirim email reset password. Silakan coba lagi nanti."
	MsgResetRecipientMissing = "Konfigurasi server error: Email tujuan admin tidak diset."

	MsgTokenMissing = "Akses ditolak. Token tidak ada atau format header salah."
	MsgTokenInvalid = "Token tidak valid: Format atau tanda tangan salah."
	MsgTokenExpired = "Token tidak valid: Token sudah kedaluwarsa."

	MsgArticleNotFound  = "Artikel tidak ditemukan."
	MsgArticleInvalidID = "ID Artikel tidak valid."
	MsgArticleDeleted   = "Artikel berhasil dihapus."
	MsgProductNotFound  = "Produk tidak ditemukan."
	MsgProductInvalidID = "ID Produk tidak valid."
	MsgProductDeleted   = "Produk berhasil dihapus."
	MsgImageNotFound    = "Gambar tidak ditemukan"

	MsgImageProcessingFailed = "Gagal memproses gambar."
	MsgFileTooLarge          = "File terlalu besar. Maksimum %dMB diizinkan."
	MsgImageOnly             = "Hanya file gambar (image/*) yang diizinkan!"
	MsgMalformedBody         = "Format permintaan tidak valid."

	MsgChatMessageRequired = "Pesan tidak boleh kosong."
	MsgChatUnavailable     = "Layanan chatbot tidak tersedia."
)

// Field validation messages.
const (
	MsgArticleTitleRequired       = "Judul artikel tidak boleh kosong"
	MsgArticleContentRequired     = "Isi artikel tidak boleh kosong"
	MsgProductNameRequired        = "Nama produk tidak boleh kosong"
	MsgProductDescriptionRequired = "Deskripsi produk tidak boleh kosong"
	MsgProductPriceRequired       = "Harga produk tidak boleh kosong"
	MsgProductPriceNegative       = "Harga produk tidak boleh negatif"
	MsgProductPriceNotNumber      = "Harga produk harus berupa angka"
)
